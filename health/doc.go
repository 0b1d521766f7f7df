// Package health reports the state of a running signal flow.
//
// A Status is healthy, degraded or unhealthy. FromAnalysis derives the build
// state of a flow from its connectivity analysis and FromRun the state of block
// processing. A Monitor collects named statuses from concurrent writers and
// Handler serves their aggregate as JSON, answering 503 while any of them is
// unhealthy:
//
//	monitor := health.NewMonitor()
//	monitor.Update("flow", health.FromAnalysis("flow", flow.Analysis()))
//	server.SetHealthHandler(health.Handler(monitor, "visrflow"))
//
// Messages taken from errors are sanitized: URLs, paths, addresses, ports and
// credential assignments are replaced by placeholders.
package health
