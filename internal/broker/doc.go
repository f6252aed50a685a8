// Package broker connects the pipeline to RabbitMQ.
//
// A Consumer reads processing commands from a durable queue and hands them to
// the orchestrator; a Publisher announces finished videos on the event queue
// read by downstream indexing. Both share one Client connection.
package broker
