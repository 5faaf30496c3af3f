/*
Package ports defines the driven ports (interfaces) of the courier host.

These interfaces decouple handlers and behaviors from concrete infrastructure,
so the same application runs on memory, Redis or file-backed storage.

# Key Interfaces

  - Repository: persists entities by id (memory, Redis, Loam adapters).
  - DistributedLocker: serializes work on a key across replicas.
  - Dispatcher: the untyped mediator surface transports depend on.
*/
package ports
