// Package match provides matchers over importmock stand-ins. The matchers
// are compatible with gomega via duck typing and are designed to be
// dot-imported alongside it:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    . "github.com/toejough/importmock/match"
//	)
//
//	Expect(standIn.Attr("connect")).To(HaveBeenCalledWith("localhost", 5432))
package match

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/akedrou/textdiff"

	"github.com/toejough/importmock"
)

// errNotAStandIn is a sentinel error for actual values that aren't stand-ins.
var errNotAStandIn = errors.New("not a stand-in")

// errTypeMismatch is a sentinel error for type assertion failures.
var errTypeMismatch = errors.New("type mismatch")

// Matcher defines the interface for flexible value matching. It is
// compatible with gomega.GomegaMatcher in both directions: gomega matchers
// satisfy the nested-argument surface, and these matchers satisfy gomega's
// interface.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
	NegatedFailureMessage(actual any) string
}

// BeAnyArg matches any argument value. Useful inside HaveBeenCalledWith when
// you don't care about a particular argument.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAnyArg Matcher = anyMatcher{}

// HaveBeenCalled returns a matcher that succeeds when the stand-in has
// recorded at least one invocation.
func HaveBeenCalled() Matcher {
	return calledMatcher{}
}

// HaveBeenCalledWith returns a matcher that succeeds when at least one
// recorded invocation has the given arguments. Each expected argument may
// itself be a Matcher (or a gomega matcher); other values are compared with
// reflect.DeepEqual.
func HaveBeenCalledWith(args ...any) Matcher {
	return &calledWithMatcher{expected: args}
}

// HaveCallCount returns a matcher that succeeds when the stand-in has
// recorded exactly count invocations.
func HaveCallCount(count int) Matcher {
	return &callCountMatcher{expected: count}
}

// SatisfyArg returns a matcher that uses a predicate function to check an
// argument. The predicate returns nil for a match, or an error describing
// the mismatch.
func SatisfyArg[T any](predicate func(T) error) Matcher {
	return &satisfyMatcher[T]{predicate: predicate}
}

// anyMatcher is the implementation of the BeAnyArg matcher.
type anyMatcher struct{}

// FailureMessage returns an empty string since BeAnyArg always matches.
func (anyMatcher) FailureMessage(any) string {
	return ""
}

// Match always returns true.
func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

// NegatedFailureMessage explains that BeAnyArg cannot fail to match.
func (anyMatcher) NegatedFailureMessage(any) string {
	return "expected value not to match, but BeAnyArg matches everything"
}

type callCountMatcher struct {
	expected int
}

func (m *callCountMatcher) FailureMessage(actual any) string {
	standIn, err := asStandIn(actual)
	if err != nil {
		return err.Error()
	}

	return fmt.Sprintf(
		"expected %s to have %d recorded calls, got %d",
		standIn.Path(), m.expected, standIn.CallCount(),
	)
}

func (m *callCountMatcher) Match(actual any) (bool, error) {
	standIn, err := asStandIn(actual)
	if err != nil {
		return false, err
	}

	return standIn.CallCount() == m.expected, nil
}

func (m *callCountMatcher) NegatedFailureMessage(actual any) string {
	standIn, err := asStandIn(actual)
	if err != nil {
		return err.Error()
	}

	return fmt.Sprintf(
		"expected %s not to have %d recorded calls",
		standIn.Path(), m.expected,
	)
}

type calledMatcher struct{}

func (calledMatcher) FailureMessage(actual any) string {
	standIn, err := asStandIn(actual)
	if err != nil {
		return err.Error()
	}

	return fmt.Sprintf("expected %s to have been called", standIn.Path())
}

func (calledMatcher) Match(actual any) (bool, error) {
	standIn, err := asStandIn(actual)
	if err != nil {
		return false, err
	}

	return standIn.Called(), nil
}

func (calledMatcher) NegatedFailureMessage(actual any) string {
	standIn, err := asStandIn(actual)
	if err != nil {
		return err.Error()
	}

	return fmt.Sprintf(
		"expected %s not to have been called, but it recorded %d calls",
		standIn.Path(), standIn.CallCount(),
	)
}

type calledWithMatcher struct {
	expected []any
}

// FailureMessage renders a unified diff between the expected call and the
// calls that were actually recorded.
func (m *calledWithMatcher) FailureMessage(actual any) string {
	standIn, err := asStandIn(actual)
	if err != nil {
		return err.Error()
	}

	want := renderCall(standIn.Path(), m.expected) + "\n"
	got := renderCalls(standIn)

	diff := textdiff.Unified("expected call", "recorded calls", want, got)

	return fmt.Sprintf(
		"expected %s to have a recorded call matching the given arguments\n%s",
		standIn.Path(), diff,
	)
}

func (m *calledWithMatcher) Match(actual any) (bool, error) {
	standIn, err := asStandIn(actual)
	if err != nil {
		return false, err
	}

	for _, call := range standIn.Calls() {
		if m.argsMatch(call.Args) {
			return true, nil
		}
	}

	return false, nil
}

func (m *calledWithMatcher) NegatedFailureMessage(actual any) string {
	standIn, err := asStandIn(actual)
	if err != nil {
		return err.Error()
	}

	return fmt.Sprintf(
		"expected %s not to have a recorded call matching %s",
		standIn.Path(), renderCall(standIn.Path(), m.expected),
	)
}

func (m *calledWithMatcher) argsMatch(args []any) bool {
	if len(args) != len(m.expected) {
		return false
	}

	for i, expected := range m.expected {
		ok, _ := matchValue(args[i], expected)
		if !ok {
			return false
		}
	}

	return true
}

type satisfyMatcher[T any] struct {
	predicate func(T) error
	lastErr   error
}

func (m *satisfyMatcher[T]) FailureMessage(actual any) string {
	if m.lastErr != nil {
		return fmt.Sprintf("value %v does not satisfy predicate: %v", actual, m.lastErr)
	}

	return fmt.Sprintf("value %v does not satisfy predicate", actual)
}

func (m *satisfyMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)

	if !ok {
		return false, fmt.Errorf("%w: expected %T, got %T", errTypeMismatch, *new(T), actual)
	}

	m.lastErr = m.predicate(val)

	return m.lastErr == nil, nil
}

func (m *satisfyMatcher[T]) NegatedFailureMessage(actual any) string {
	return fmt.Sprintf("value %v satisfies predicate, expected it not to", actual)
}

// valueMatcher is the minimal matching surface checked for nested expected
// arguments. Both Matcher and gomega matchers satisfy it.
type valueMatcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// asStandIn asserts that the actual value under test is a stand-in.
func asStandIn(actual any) (*importmock.StandIn, error) {
	standIn, ok := actual.(*importmock.StandIn)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", errNotAStandIn, actual)
	}

	return standIn, nil
}

// matchValue checks if actual matches expected. If expected implements the
// matching surface, its Match method decides; otherwise reflect.DeepEqual
// compares the values directly.
func matchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(valueMatcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			return false, matcher.FailureMessage(actual)
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

// renderCall formats a single call as path(arg, arg, ...).
func renderCall(path string, args []any) string {
	rendered := make([]string, len(args))
	for i, arg := range args {
		rendered[i] = fmt.Sprintf("%#v", arg)
	}

	return fmt.Sprintf("%s(%s)", path, strings.Join(rendered, ", "))
}

// renderCalls formats the recorded calls one per line.
func renderCalls(standIn *importmock.StandIn) string {
	calls := standIn.Calls()
	if len(calls) == 0 {
		return "(no recorded calls)\n"
	}

	var builder strings.Builder
	for _, call := range calls {
		builder.WriteString(renderCall(standIn.Path(), call.Args))
		builder.WriteString("\n")
	}

	return builder.String()
}
