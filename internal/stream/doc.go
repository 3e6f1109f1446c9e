// Package stream 让日程解释器可以由消息队列驱动：命令以 Message 形式入队，
// Processor 消费后交给解释器执行，并把 Reply 写回应答通道。
//
// 支持的队列实现包括进程内的 MemoryQueue、基于 Redis list 的 RedisQueue
// 以及基于 RabbitMQ 的 RabbitMQQueue。
package stream
