package queue

// Config selects and configures a queue Backend for the CLI.
type Config struct {
	// Backend selects which Backend implementation to build: "memory"
	// (default), "kafka", or "sqs".
	Backend string `json:"backend" yaml:"backend"`

	// MemoryBufferSize sizes each priority lane's channel when Backend is
	// "memory".
	MemoryBufferSize int `json:"memory_buffer_size" yaml:"memory_buffer_size"`

	Kafka KafkaQueueConfig `json:"kafka" yaml:"kafka"`
	SQS   SQSQueueConfig   `json:"sqs" yaml:"sqs"`

	// WorkerConcurrency bounds how many requests Worker.Run processes in
	// parallel.
	WorkerConcurrency int `json:"worker_concurrency" yaml:"worker_concurrency"`
}

func (c *Config) defaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.MemoryBufferSize <= 0 {
		c.MemoryBufferSize = 256
	}
	if c.WorkerConcurrency <= 0 {
		c.WorkerConcurrency = 4
	}
}

// Defaults applies zero-value defaults and returns the receiver, for use at
// the CLI boundary right after YAML decoding.
func (c Config) Defaults() Config {
	c.defaults()
	return c
}
