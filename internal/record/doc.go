// Package record defines the value model for offline invoice records.
//
// A record is an opaque JSON-like object. Only its primary key attribute
// (the "id" field for invoices) is interpreted; every other attribute is
// carried through storage unchanged.
//
// Values are a sealed set of types: Null, String, Int, Float, Bool, Array
// and Object. Integers and floats are kept distinct so that a stored record
// reads back exactly as it was written.
//
// Serialization uses a canonical JSON form (sorted keys, no HTML escaping)
// so that equal records always produce equal bytes.
package record
