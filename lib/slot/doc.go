// Package slot implements the property record ("slot") stored in slot maps.
//
// A Slot has a fixed identity (a Key: string name, symbol or integer index),
// a mutable attribute bitmask and a value-resolution strategy selected by its
// Kind:
//
//   - KindValue: the value is stored inline, writes honour ReadOnly.
//   - KindAccessor: an optional getter and setter, each either a script function
//     (FunctionGetter/FunctionSetter) or a native delegate (NativeGetter/NativeSetter).
//     Assigning to a getter-only accessor is a NoSetterError in strict mode and a
//     no-op otherwise.
//   - KindLambda: native closures, turned into callables only when a descriptor
//     needs them.
//   - KindOwnerAware: native closures that receive the owning object.
//   - KindBuiltIn: the value is the native object itself; reads, writes and
//     attribute changes are delegated to functions bound to it.
//   - KindLazy: the value is computed once on first read.
//
// The package also owns the intrusive links (bucket chain, insertion order,
// position) that table representations thread through slots. Only the table
// that currently holds a slot may change them.
//
// Thread-safety: values, attributes, accessor functions and the bucket link are
// accessed atomically. The insertion-order links and position are not and must
// only be used under the owning table's exclusive lock.
package slot
