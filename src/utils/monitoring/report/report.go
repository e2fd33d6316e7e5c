package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Indexer        *IndexerReport        `json:"indexer,omitempty"`
	Content        *ContentReport        `json:"content,omitempty"`
	Coordinator    *CoordinatorReport    `json:"coordinator,omitempty"`
	Pinning        *PinningReport        `json:"pinning,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}
