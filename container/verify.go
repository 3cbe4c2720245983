package container

// ── Startup verification ──────────────────────────────────────────────────────

// VerifyResult is the outcome of probing one critical key.
type VerifyResult struct {
	Key       ServiceKey `json:"key"`
	OK        bool       `json:"ok"`
	UsingMock bool       `json:"usingMock"`
	Error     string     `json:"error,omitempty"`
}

// VerifyContainer probes every key in criticalKeys and reports whether all
// of them resolved. It never panics and never returns an error — it is a
// startup diagnostic, not a gate that crashes the process. Side effects of
// successful probes (singleton creation, mock fallback) are kept, so a
// passing verification also warms the caches.
func VerifyContainer(c *Container, criticalKeys []ServiceKey) bool {
	ok := true
	for _, r := range VerifyReport(c, criticalKeys) {
		ok = ok && r.OK
	}
	return ok
}

// VerifyReport is VerifyContainer with per-key detail, for the diagnostics
// endpoint and for startup logs that should name exactly what is broken.
func VerifyReport(c *Container, criticalKeys []ServiceKey) []VerifyResult {
	log := c.logger()
	results := make([]VerifyResult, 0, len(criticalKeys))

	for _, key := range criticalKeys {
		res := VerifyResult{Key: key}
		if _, err := c.Resolve(key); err != nil {
			res.Error = err.Error()
			log.WithFields(map[string]any{
				"key": string(key),
			}).WithError(err).Error("container verification failed")
		} else {
			res.OK = true
			res.UsingMock = c.IsUsingMock(key)
			if res.UsingMock {
				log.WithFields(map[string]any{
					"key": string(key),
				}).Warn("container verification resolved a mock stand-in")
			}
		}
		results = append(results, res)
	}
	return results
}
