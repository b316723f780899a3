package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyACM0")
	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, 200, cfg.ReadTimeout)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(nil)
	assert.Error(t, err)

	_, err = Open(&Config{Device: "/dev/null", Baud: 0})
	assert.Error(t, err)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(DefaultConfig("/dev/clockdriver-does-not-exist"))
	assert.ErrorContains(t, err, "clockdriver-does-not-exist")
}
