// metrics — счётчики Prometheus для каждого пути деградации.
// Тихие фолбэки (нулевой баланс, пропуск ленты, текст-заглушка, чтение кэша)
// должны быть видны снаружи, иначе системный отказ апстрима маскируется.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "web3hub"

// Metrics агрегирует счётчики. Методы безопасны для nil-получателя,
// поэтому сервисы в тестах можно собирать без реестра.
type Metrics struct {
	accessDegraded *prometheus.CounterVec
	feedFetch      *prometheus.CounterVec
	enrichFallback *prometheus.CounterVec
	cacheOps       *prometheus.CounterVec
	ingest         *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		accessDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_degraded_total",
			Help:      "Access checks that fell back to a zero balance, by reason.",
		}, []string{"reason"}),
		feedFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_total",
			Help:      "RSS feed fetches by source and result.",
		}, []string{"source", "result"}),
		enrichFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_fallback_total",
			Help:      "Enrichment calls replaced by deterministic fallback text, by field.",
		}, []string{"field"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_cache_total",
			Help:      "News cache operations by op and result.",
		}, []string{"op", "result"}),
		ingest: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_total",
			Help:      "News ingestion runs by outcome: fresh, cache, failed.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.accessDegraded, m.feedFetch, m.enrichFallback, m.cacheOps, m.ingest)
	}

	return m
}

// AccessDegraded — проверка доступа ушла в нулевой баланс.
func (m *Metrics) AccessDegraded(reason string) {
	if m == nil {
		return
	}
	m.accessDegraded.WithLabelValues(reason).Inc()
}

// FeedFetch — итог загрузки одной ленты: ok или skipped.
func (m *Metrics) FeedFetch(source, result string) {
	if m == nil {
		return
	}
	m.feedFetch.WithLabelValues(source, result).Inc()
}

// EnrichFallback — вместо ответа LLM подставлен текст-заглушка.
func (m *Metrics) EnrichFallback(field string) {
	if m == nil {
		return
	}
	m.enrichFallback.WithLabelValues(field).Inc()
}

// CacheOp — чтение/запись кэша новостей.
func (m *Metrics) CacheOp(op, result string) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues(op, result).Inc()
}

// Ingest — итог прогона пайплайна.
func (m *Metrics) Ingest(result string) {
	if m == nil {
		return
	}
	m.ingest.WithLabelValues(result).Inc()
}
