package executor

import (
	language "github.com/aviodev/graphlet/internal/language"
	schema "github.com/aviodev/graphlet/internal/schema"
)

// collectedField groups the query fields that share one response name.
type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

// collectedFieldMap preserves field order from the original query.
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (cfm *collectedFieldMap) add(responseName string, field *language.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
		return
	}
	cfm.index[responseName] = len(cfm.fields)
	cfm.fields = append(cfm.fields, collectedField{
		ResponseName: responseName,
		Fields:       []*language.Field{field},
	})
}

// collectFields flattens a selection set into an ordered list of field
// groups, applying @skip/@include and expanding fragments whose type
// condition matches the current object type.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) []collectedField {
	grouped := newCollectedFieldMap()
	visitedFragments := make(map[string]bool)
	collectFieldsImpl(state, objectType, selectionSet, grouped, visitedFragments)
	return grouped.fields
}

func collectFieldsImpl(
	state *executionState,
	objectType *schema.Type,
	selectionSet language.SelectionSet,
	grouped *collectedFieldMap,
	visitedFragments map[string]bool,
) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}
			grouped.add(responseName, sel)

		case *language.InlineFragment:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			if !fragmentApplies(state, objectType, sel.TypeCondition) {
				continue
			}
			collectFieldsImpl(state, objectType, sel.SelectionSet, grouped, visitedFragments)

		case *language.FragmentSpread:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := state.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil {
				continue
			}
			if !fragmentApplies(state, objectType, fragmentDef.TypeCondition) {
				continue
			}
			if !shouldIncludeNode(state, fragmentDef.Directives) {
				continue
			}
			collectFieldsImpl(state, objectType, fragmentDef.SelectionSet, grouped, visitedFragments)
		}
	}
}

// fragmentApplies reports whether a fragment with the given type condition
// selects into objectType: same type, an interface it implements, or a
// union it belongs to.
func fragmentApplies(state *executionState, objectType *schema.Type, typeCondition string) bool {
	if typeCondition == "" || typeCondition == objectType.Name {
		return true
	}
	for _, iface := range objectType.Interfaces {
		if iface == typeCondition {
			return true
		}
	}
	if cond := state.registry.Type(typeCondition); cond != nil {
		for _, possible := range cond.PossibleTypes {
			if possible == objectType.Name {
				return true
			}
		}
	}
	return false
}

// shouldIncludeNode evaluates @skip/@include before any resolver runs.
// When both directives apply, @skip wins.
func shouldIncludeNode(state *executionState, directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if cond, ok := directiveCondition(state, skip); ok && cond {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if cond, ok := directiveCondition(state, include); ok && !cond {
			return false
		}
	}
	return true
}

// directiveCondition resolves the boolean `if` argument from a literal or a
// bound variable.
func directiveCondition(state *executionState, directive *language.Directive) (bool, bool) {
	for _, arg := range directive.Arguments {
		if arg.Name != "if" {
			continue
		}
		v := valueFromAST(state, arg.Value)
		b, ok := v.(bool)
		return b, ok
	}
	return false, false
}
