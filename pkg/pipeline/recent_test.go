package pipeline

import (
	"fmt"
	"testing"
	"time"
)

func TestRecentConsume(t *testing.T) {
	recent := newRecentlyConverted(recentDefaultTTL, recentDefaultCapacity)
	recent.add("/parent", "name")
	if !recent.consume("/parent", "name") {
		t.Error("marker not consumed")
	}
	if recent.consume("/parent", "name") {
		t.Error("marker consumed twice")
	}
	if recent.consume("/parent", "other") {
		t.Error("unrelated marker consumed")
	}
}

func TestRecentRemove(t *testing.T) {
	recent := newRecentlyConverted(recentDefaultTTL, recentDefaultCapacity)
	recent.add("/parent", "name")
	recent.remove("/parent", "name")
	if recent.consume("/parent", "name") {
		t.Error("removed marker consumed")
	}
}

func TestRecentExpiry(t *testing.T) {
	recent := newRecentlyConverted(time.Millisecond, recentDefaultCapacity)
	recent.add("/parent", "name")
	time.Sleep(5 * time.Millisecond)
	if recent.consume("/parent", "name") {
		t.Error("expired marker consumed")
	}
}

func TestRecentCapacity(t *testing.T) {
	recent := newRecentlyConverted(recentDefaultTTL, 2)
	recent.add("/parent", "first")
	recent.add("/parent", "second")
	recent.add("/parent", "third")
	if recent.consume("/parent", "first") {
		t.Error("evicted marker consumed")
	}
	if !recent.consume("/parent", "second") || !recent.consume("/parent", "third") {
		t.Error("retained markers not consumed")
	}
	if len(recent.entries) != 0 || len(recent.order) != 0 {
		t.Error("marker bookkeeping inconsistent")
	}
}

func TestRecentCapacityChurn(t *testing.T) {
	recent := newRecentlyConverted(recentDefaultTTL, 8)
	for i := 0; i < 100; i++ {
		recent.add("/parent", fmt.Sprintf("name-%d", i))
	}
	if len(recent.entries) != 8 || len(recent.order) != 8 {
		t.Error("capacity bound not enforced")
	}
}
