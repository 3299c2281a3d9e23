// Package signal holds the domain model shared by the generation client: the
// signal families, the per-family pattern catalog, generation settings and
// their bounds, and the result and artifact types returned by the service.
//
// Everything here is a value type with no I/O beyond JSON decoding. The
// catalog keeps the order the service returned so menus render the same way
// on every load.
package signal
