// Package driver implements the Driver aggregate: a driver's activation,
// self-reported availability and single in-flight order slot.
//
// The dispatcher only offers orders to eligible drivers (active, available,
// slot empty) and ranks them by availableSince, so the driver who has waited
// longest is served first.
package driver
