// Package telemetry provides the observability pipeline for PulseLog:
// structured logging (zerolog), view-session monitoring on OpenTelemetry
// spans, Prometheus metrics, and an in-process transcript event stream.
//
// The pieces compose into a single Telemetry value:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ClientToken = token
//	cfg.ApplicationID = appID
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//		// configuration is invalid; nothing was started
//	}
//	defer tel.Shutdown(ctx)
//
// Most consumers go through the Facade rather than the individual parts:
//
//	facade := telemetry.NewFacade(tel)
//	facade.SetOnLogSent(func(line string) { transcript.Append(line) })
//	facade.LogMessage("Working.", telemetry.LevelInfo)
//	facade.LogError(err, "sync")
//
// View lifecycles are tracked with a scoped guard:
//
//	session := facade.Track("ContentView")
//	defer session.End()
//
// Every operation is fire-and-forget. Export batching, retry, and delivery
// are owned by the OTel SDK and the configured log writer; this package
// makes no delivery guarantees beyond handing signals to them once.
package telemetry
