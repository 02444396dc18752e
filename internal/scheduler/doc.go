// Package scheduler runs the daily update loop.
//
// Every poll interval the scheduler reads the clock in its configured time zone
// and asks the DailyGate whether a notification attempt is allowed. The gate
// opens once the local time of day reaches the threshold and the current date
// is after the last date a notification was delivered for. An open gate leads
// to a fetch, a formatted message and a delivery attempt. Only a delivered
// notification advances the gate, so fetch and delivery failures are retried on
// the next tick until the attempt succeeds or the day rolls over.
//
// Per calendar day the gate moves through three states:
//
//	WaitingForThreshold --(threshold reached)--> WaitingForSuccess
//	WaitingForSuccess   --(fetch or notify failed)--> WaitingForSuccess
//	WaitingForSuccess   --(notification delivered)--> Satisfied
//	Satisfied           --(date rolls over)--> WaitingForThreshold
package scheduler
