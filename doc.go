/*
Package logicsim provides a digital logic simulator: components such as logic
gates, registers or switches are placed on boards and connected by wires, and
the simulator computes the resulting signal of every net.

Signals have four states: Floating (no driver), Low, High and Error (driver
conflict). All pin bits connected by wires form a net whose value is resolved
from every component driving it.

Simulation runs in steps. A step propagates changes pass after pass until no
component needs re-evaluation, or reports the circuit as oscillating once a
configurable number of passes is reached. Within a pass, components only see
the net values resolved at the start of the pass, which makes results
independent of evaluation order.

Boards can be used as components in other boards through their Definition:
the Pin components of a board become the pins of the chip. Definitions are
immutable and shared between chips, while each chip runs its own instance.

*/
package logicsim
