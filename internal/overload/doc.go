// Package overload picks the member a late-bound call site binds to.
//
// Match checks arity and variadic compatibility, Infer closes generic
// methods over the argument types, and Resolver runs the constructor,
// method, property and field phases, scoring survivors by the conversions
// they need. The result is a Binding: a closed member plus the coercion
// plan the thunk compiler turns into a callable.
package overload
