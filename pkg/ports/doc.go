/*
Package ports defines the driven ports (interfaces) for the arbor loader.

These interfaces decouple the resolution pipeline from external implementations,
allowing it to work with various storage backends for parameter sets and run logs.

# Key Interfaces

  - ParamStore: Responsible for loading raw parameter sets (e.g., from Loam, files, Redis or Memory).
  - RunLog: Responsible for recording the parameters of a run and its timestamped log lines.
  - RunReader: Optional read-back of what a RunLog recorded.
*/
package ports
