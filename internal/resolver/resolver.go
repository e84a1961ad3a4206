// Package resolver flattens a contract and its transitive ancestors into the ordered,
// deduplicated member list a forwarding implementation must supply.
package resolver

import (
	"github.com/samber/lo"
	"github.com/toyz/proxygen/internal/models"
)

// ContractIndex supplies structural introspection of contracts by qualified name
type ContractIndex interface {
	Lookup(ref string) (*models.Contract, bool)
}

// Resolve returns the effective member set of contract.
//
// Contracts are walked breadth-first: the contract itself, then its direct ancestors in
// declared order, then theirs. Each contract is visited once. Ancestors the index cannot
// resolve contribute nothing. Members are deduplicated by identity and the first
// occurrence wins.
func Resolve(index ContractIndex, contract *models.Contract) []models.Member {
	if contract == nil {
		return []models.Member{}
	}

	var collected []models.Member
	visited := map[string]struct{}{contract.Name: {}}
	queue := []*models.Contract{contract}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		collected = append(collected, current.Members...)

		for _, ref := range current.Ancestors {
			if _, seen := visited[ref]; seen {
				continue
			}
			visited[ref] = struct{}{}

			if index == nil {
				continue
			}
			if ancestor, ok := index.Lookup(ref); ok {
				queue = append(queue, ancestor)
			}
		}
	}

	forwardable := lo.Filter(collected, func(m models.Member, _ int) bool {
		return models.IsForwardable(m)
	})
	return lo.UniqBy(forwardable, func(m models.Member) models.Identity {
		return m.Identity()
	})
}

// ResolveRef looks up ref and resolves it. The boolean is false when the contract
// itself cannot be found.
func ResolveRef(index ContractIndex, ref string) ([]models.Member, bool) {
	if index == nil {
		return nil, false
	}
	contract, ok := index.Lookup(ref)
	if !ok {
		return nil, false
	}
	return Resolve(index, contract), true
}
