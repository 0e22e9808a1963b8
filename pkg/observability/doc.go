/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log records.

Both Metrics.Hooks and LogHooks return domain.LifecycleHooks, so they compose
with LifecycleHooks.Merge and plug into any component accepting hooks.
*/
package observability
