// Package simcore is a host-side simulation harness for embedded
// mesh-radio firmware. It drives one firmware instance per node on a
// dedicated worker goroutine, advancing it one quantum of simulated time
// at a time under the direction of an external coordinator that owns
// virtual time and the radio medium.
package simcore
