/*
Package ports defines the driven ports (interfaces) of the shape service.

These interfaces decouple schema validation from storage and coordination
backends, so the same registry runs over memory, a directory or Redis.

# Key Interfaces

  - SchemaStore: persists shorthand schemas by name.
  - SchemaRegistry: resolves names to compiled validators (used by HTTP and MCP adapters).
  - DistributedLocker: serializes schema writes across replicas.
*/
package ports
