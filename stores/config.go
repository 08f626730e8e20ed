package stores

// Config carries the connection settings for every supported backend.
// Adapters read only the fields for their own backend.
type Config struct {
	// ChromaURL is the ChromaDB server endpoint.
	ChromaURL string
	// ChromaCollection is the collection documents are written into.
	ChromaCollection string

	// Neo4jURI is the bolt endpoint, e.g. bolt://localhost:7687.
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// FalkorAddr is the RESP endpoint, e.g. localhost:6379.
	FalkorAddr string
	// FalkorGraph is the graph name used in GRAPH.QUERY calls.
	FalkorGraph string

	// GraphitiURL is the Graphiti service base URL.
	GraphitiURL string
}

// ConfigOption mutates a Config.
type ConfigOption func(*Config)

// DefaultConfig returns a config pointed at local development defaults,
// with the given options applied.
func DefaultConfig(opts ...ConfigOption) *Config {
	config := &Config{
		ChromaURL:        "http://localhost:8000",
		ChromaCollection: "akashic",
		Neo4jURI:         "bolt://localhost:7687",
		Neo4jUser:        "neo4j",
		Neo4jPassword:    "password",
		FalkorAddr:       "localhost:6379",
		FalkorGraph:      "akashic",
		GraphitiURL:      "http://localhost:8080",
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// WithChromaURL sets the ChromaDB endpoint.
func WithChromaURL(url string) ConfigOption {
	return func(c *Config) {
		c.ChromaURL = url
	}
}

// WithChromaCollection sets the ChromaDB collection name.
func WithChromaCollection(name string) ConfigOption {
	return func(c *Config) {
		c.ChromaCollection = name
	}
}

// WithNeo4j sets the Neo4j endpoint and credentials.
func WithNeo4j(uri, user, password string) ConfigOption {
	return func(c *Config) {
		c.Neo4jURI = uri
		c.Neo4jUser = user
		c.Neo4jPassword = password
	}
}

// WithFalkor sets the FalkorDB endpoint and graph name.
func WithFalkor(addr, graph string) ConfigOption {
	return func(c *Config) {
		c.FalkorAddr = addr
		c.FalkorGraph = graph
	}
}

// WithGraphitiURL sets the Graphiti service base URL.
func WithGraphitiURL(url string) ConfigOption {
	return func(c *Config) {
		c.GraphitiURL = url
	}
}
