/*
Package domain holds the driving-school entities, the error codes their
handlers fail with, and the notifications they publish.

Entities are plain values. Persistence goes through ports.Repository and
failures travel as result.Error values built by the helpers in this package.
*/
package domain
