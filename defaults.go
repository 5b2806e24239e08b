package rawrmenu

import (
	"github.com/Keksclan/rawrmenu/menu"
	"github.com/Keksclan/rawrmenu/policy"
)

// Interceptor order. Lower values run further out.
const (
	orderRecovery   = 100
	orderRequestID  = 200
	orderLogging    = 300
	orderTracing    = 400
	orderPolicy     = 500
	orderValidation = 600
	orderCache      = 700
	orderCustom     = 800
)

// Policy group names of [MenuPolicies].
const (
	GroupReads  = "reads"
	GroupWrites = "writes"
)

// DefaultOptions returns the options recommended for production.
func DefaultOptions() []Option {
	return []Option{
		WithRecovery(),
	}
}

// MenuPolicies splits the menu methods into a read group and a write group
// with their own policies, for use with [WithPolicies].
func MenuPolicies(reads, writes policy.Policy) []*policy.GroupBuilder {
	methods := func(ops []string) []string {
		out := make([]string, len(ops))
		for i, op := range ops {
			out[i] = menu.FullMethod(op)
		}
		return out
	}
	return []*policy.GroupBuilder{
		policy.Group(GroupReads).Exact(methods(menu.ReadOps)...).Policy(reads),
		policy.Group(GroupWrites).Exact(methods(menu.WriteOps)...).Policy(writes),
	}
}
