// Package types defines the Person, Bicycle and Laptop entities, the
// Adapter contract every storage backend satisfies, backend configuration,
// and the standard error values shared by all holdings packages.
//
// Ownership is stored once, as the OwnerID foreign key on each item. The
// Owner back-reference and the Person item collections are derived state
// rebuilt by package link after every load.
package types
