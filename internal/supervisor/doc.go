// Package supervisor keeps a self-healing connection to the graphics-device server.
//
// The supervisor runs one of four modes:
//
//	Closed ──Open()──> Pushed (push enabled) or FastPoll
//	Pushed ──socket close/error──> SlowPoll
//	FastPoll ──query failure──> SlowPoll
//	SlowPoll ──query success──> Pushed (push enabled) or FastPoll
//	any ──Close()──> Closed
//
// Entering Pushed issues one state query before dialing the channel. Poll
// modes run a ticker (500ms fast, 5s slow by default). There is no backoff
// beyond those two tiers; failures retry forever.
//
// All mode state lives on one loop goroutine. Every mode activation takes a
// new generation number and every asynchronous completion carries the
// generation that issued it, so a callback from a torn-down timer or socket
// cannot act after the mode moved on. Close bumps the generation before it
// reaches the loop.
//
// Consumers read StateChanged, ConnectivityChanged and ModeChanged values from
// Events. StateChanged fires only when a snapshot differs from the previous
// one and ConnectivityChanged only on edges.
package supervisor
