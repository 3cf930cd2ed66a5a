// Package access models who is acting: session roles, the capabilities each
// role holds, and the Principal passed into every application operation.
//
// The role to capability mapping is an explicit table:
//
//	customer   -> customer-write, read
//	restaurant -> restaurant-write, read
//	driver     -> driver-write, read
//	admin      -> admin-write, restaurant-write, read
//	system     -> dispatch
//
// Capability checks answer "may this role call this operation at all"; the
// order aggregate then applies ownership and state-machine rules.
package access
