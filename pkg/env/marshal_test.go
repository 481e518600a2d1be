package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string        `env:"NAME,required"`
	Port     int           `env:"PORT" envDefault:"8080"`
	Ratio    float64       `env:"RATIO"`
	Enabled  bool          `env:"ENABLED"`
	Interval time.Duration `env:"INTERVAL"`
	Topics   []string      `env:"TOPICS" envSeparator:";"`
	Tags     []string      `env:"TAGS"`
	Empty    string        `env:"EMPTY"`
	NoTag    string
	hidden   string `env:"HIDDEN"`
}

func TestMarshalEnv(t *testing.T) {
	c := &sample{
		Name:     "scout",
		Port:     9090,
		Ratio:    0.3,
		Enabled:  true,
		Interval: 90 * time.Second,
		Topics:   []string{"Top Highlights", "AI chips"},
		Tags:     []string{"a", "b"},
		NoTag:    "ignored",
		hidden:   "ignored",
	}

	out, err := MarshalEnv(c)
	require.NoError(t, err)
	assert.Equal(t, "NAME=scout\n"+
		"PORT=9090\n"+
		"RATIO=0.3\n"+
		"ENABLED=true\n"+
		"INTERVAL=1m30s\n"+
		"TOPICS=Top Highlights;AI chips\n"+
		"TAGS=a,b\n", out)
}

func TestMarshalEnv_AllZero(t *testing.T) {
	out, err := MarshalEnv(&sample{})
	require.NoError(t, err)
	assert.Empty(t, out)
}
