/*
Package session keeps Flash messages, and whatever else a handler needs, between requests.

Sessions are stored in cookies by default or in Redis with WithRedis.
*/
package session
