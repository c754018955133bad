/*
registry.go - Evaluation method registration and lookup

PURPOSE:
  Provides a registry for method packages (point, ranking) to register how
  their partition policy is built from a single user parameter, what their
  default seed looks like and what parameter to suggest for a job list.

HOW IT WORKS:
  1. Method packages define a PartitionPolicy implementation
  2. They register a MethodSpec in init()
  3. The session controller and the API look methods up by name

USAGE:
  // In ranking/policy.go
  func init() {
      grading.RegisterMethod(grading.MethodSpec{Method: grading.MethodRanking, ...})
  }

  // In engine
  spec, err := grading.LookupMethod(grading.MethodRanking)
  policy, err := spec.NewPolicy(5)

WHY A REGISTRY:
  - grading stays method-agnostic
  - Sessions store the method as a plain string
  - New methods plug in without touching the controller

SEE ALSO:
  - policy.go: PartitionPolicy and SeedParams
  - point/interval.go, ranking/policy.go: Registered methods
*/
package grading

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// MethodSpec describes everything the controller needs for one method.
type MethodSpec struct {
	Method Method

	// NewPolicy builds the policy for a user parameter (grade count,
	// score interval, ...).
	NewPolicy func(param int) (PartitionPolicy, error)

	// DefaultSeed returns the method's default midpoint/spread seeding.
	DefaultSeed func(baseWage decimal.Decimal) SeedParams

	// SuggestParam proposes a parameter for the job list.
	SuggestParam func(jobs []Job) int
}

// =============================================================================
// METHOD REGISTRY
// =============================================================================

var (
	methodRegistry = make(map[Method]MethodSpec)
	registryMu     sync.RWMutex
)

// RegisterMethod adds a method to the global registry.
// Call this from method package init() functions.
func RegisterMethod(spec MethodSpec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	methodRegistry[spec.Method] = spec
}

// LookupMethod finds a registered method.
func LookupMethod(m Method) (MethodSpec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	spec, ok := methodRegistry[m]
	if !ok {
		return MethodSpec{}, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
	return spec, nil
}

// ListMethods returns all registered methods, sorted by name.
func ListMethods() []Method {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Method, 0, len(methodRegistry))
	for m := range methodRegistry {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
