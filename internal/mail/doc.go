// Package mail delivers transactional email outside the request path.
//
// Messages are placed on a bounded Queue and sent by a Dispatcher's worker
// pool through a Mailer. AccountEventHandler turns account events into the
// welcome and cancellation messages. Delivery is at most once: a full queue
// or a failed send is logged and the message is dropped.
package mail
