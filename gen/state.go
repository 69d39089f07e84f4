// Package gen implements the generation pipeline: Member, Params,
// DistCache, SpeciesInfo, UnevaluatedGen, and EvaluatedGen. It is the Go
// counterpart of the Rust original's gen:: module.
package gen

// State is the capability set the engine requires of an evolved artifact.
// It replaces the Rust State trait bound (Clone + PartialOrd + PartialEq +
// Display) with an explicit interface, following the teacher's preference
// for small capability interfaces (operators.MutationOperator,
// fitness.Evaluator) over reflection-based generics.
type State[S any] interface {
	Clone() S
	Less(other S) bool
	Equal(other S) bool
	String() string
}
