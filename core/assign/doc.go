// Package assign implements the assignment engine: binding field providers
// to service jobs, either on explicit dispatcher request or in batch through
// an auto-assignment strategy.
//
// Key components:
//   - Engine: orchestrates validation, reservation, binding and rollback.
//   - Strategy: ranks candidate providers for one job.
//   - Balanced: the default strategy, minimising distance with a workload
//     tie-break.
//
// Assignment flow for one job:
//  1. Load and validate the job (exists, not terminal, not already bound)
//  2. Load and validate the provider (on duty, available)
//  3. Reserve the provider through the store's compare-and-set
//  4. Bind the provider on the job, releasing the reservation on failure
//  5. Publish events and resolve to exactly one notification
//
// Assignment never changes job status: marking a job en_route is a separate
// dispatcher action through the status package.
package assign
