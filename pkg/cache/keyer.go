package cache

// LayoutKeyOpts lists every option that changes a layout result.
// The calling convention (sync or event) is deliberately absent: both produce
// identical positions.
type LayoutKeyOpts struct {
	LinkDistance   float64 `json:"link_distance"`
	LinkIterations int     `json:"link_iterations"`
	ChargeStrength float64 `json:"charge_strength"`
	Theta          float64 `json:"theta"`
	VelocityDecay  float64 `json:"velocity_decay"`
	AlphaMin       float64 `json:"alpha_min"`
	AlphaDecay     float64 `json:"alpha_decay"`
	Iterations     int     `json:"iterations"`
	RandomInit     bool    `json:"random_init"`
	Seed           uint64  `json:"seed"`
	CenterX        float64 `json:"center_x"`
	CenterY        float64 `json:"center_y"`
}

// RenderKeyOpts lists every option that changes a rendered artifact.
type RenderKeyOpts struct {
	Format    string  `json:"format"`
	NodeSize  float64 `json:"node_size"`
	Scale     float64 `json:"scale"`
	ShowLabel bool    `json:"show_label"`
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes the content hash and options into "layout:" and
// "render:" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns the key for a layout of the graph with hash graphHash.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// RenderKey returns the key for an artifact rendered from a laid-out graph.
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}
