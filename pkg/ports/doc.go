/*
Package ports defines the driven ports (interfaces) of the stepviz engine.

These interfaces decouple producers, players and surfaces from the storage and
coordination backends they rely on.

# Key Interfaces

  - SequenceProducer: Materializes a Step sequence from a parameter record.
  - SequenceCache: Stores materialized sequences by their parameter key (Memory, Redis).
  - DistributedLocker: Serializes control of one surface across replicas.
*/
package ports
