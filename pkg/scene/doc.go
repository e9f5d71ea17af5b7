// Package scene evaluates Lisp scene descriptions into named shapes and
// compounds. Each evaluation runs in a fresh zygomys sandbox and produces a
// new immutable Scene.
package scene
