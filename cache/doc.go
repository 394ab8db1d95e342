/*
Package cache keeps rendered responses so they can be served again without rendering.

A MemoryStore suits development and tests; a RedisStore shares entries between servers.
*/
package cache
