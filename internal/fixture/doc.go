// Package fixture models the programmable test fixture behind the
// packet link and wires its operations into the command table.
package fixture
