package flight

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/tvcsim/internal/dynamo"
	"github.com/san-kum/tvcsim/internal/integrators"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

func newController() *Controller {
	return New(vehicle.New(), integrators.NewRK4(), DefaultOptions())
}

func TestInitialPhase(t *testing.T) {
	c := newController()

	snap := c.Snapshot()
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, 0.0, snap.T)
	assert.Equal(t, vehicle.New().InitialMass, snap.State[vehicle.Mass])
	assert.Empty(t, c.History())
}

func TestStartPauseLegality(t *testing.T) {
	c := newController()

	require.NoError(t, c.Start())
	assert.Equal(t, PhaseRunning, c.Phase())

	err := c.Start()
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, PhaseRunning, c.Phase())

	require.NoError(t, c.Pause())
	assert.Equal(t, PhasePaused, c.Phase())

	err = c.Pause()
	assert.ErrorIs(t, err, ErrInvalidOperation)

	// paused flights can resume
	require.NoError(t, c.Start())
	assert.Equal(t, PhaseRunning, c.Phase())
}

func TestStepLegality(t *testing.T) {
	c := newController()
	c.SetThrottle(1.0)

	require.NoError(t, c.Step())
	assert.Equal(t, PhaseIdle, c.Phase(), "manual step must not change phase")
	assert.Len(t, c.History(), 1)
	assert.InDelta(t, c.Dt(), c.Snapshot().T, 1e-15)

	require.NoError(t, c.Start())
	err := c.Step()
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Len(t, c.History(), 1, "rejected step must not append")
}

func TestTickOnlyAdvancesWhileRunning(t *testing.T) {
	c := newController()

	require.NoError(t, c.Tick())
	assert.Empty(t, c.History(), "tick while idle is a no-op")

	require.NoError(t, c.Start())
	require.NoError(t, c.Tick())
	assert.Len(t, c.History(), 1)
}

func TestGimbalLock(t *testing.T) {
	c := newController()
	deg10 := 10 * math.Pi / 180

	require.NoError(t, c.SetGimbal(deg10, 0))
	require.NoError(t, c.Start())

	err := c.SetGimbal(deg10*2, 0)
	assert.ErrorIs(t, err, ErrGimbalLocked)
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.InDelta(t, deg10, c.Snapshot().GimbalX, 1e-15, "stored gimbal must be unchanged")

	// throttle stays mutable in flight
	c.SetThrottle(0.5)
	assert.InDelta(t, 0.5, c.Snapshot().Throttle, 1e-15)

	// the lock persists through pause, only reset releases it
	require.NoError(t, c.Pause())
	assert.ErrorIs(t, c.SetGimbal(0, 0), ErrGimbalLocked)

	c.Reset()
	assert.NoError(t, c.SetGimbal(0, 0))
}

func TestControlClamping(t *testing.T) {
	c := newController()

	c.SetThrottle(1.7)
	assert.Equal(t, 1.0, c.Snapshot().Throttle)

	c.SetThrottle(-0.2)
	assert.Equal(t, 0.0, c.Snapshot().Throttle)

	require.NoError(t, c.SetGimbal(2*vehicle.MaxGimbal, -2*vehicle.MaxGimbal))
	snap := c.Snapshot()
	assert.Equal(t, vehicle.MaxGimbal, snap.GimbalX)
	assert.Equal(t, -vehicle.MaxGimbal, snap.GimbalY)
}

func TestVerticalAscentScenario(t *testing.T) {
	c := newController()
	c.SetThrottle(1.0)
	require.NoError(t, c.SetGimbal(0, 0))
	require.NoError(t, c.Start())

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Tick())
	}

	snap := c.Snapshot()
	assert.InDelta(t, 1.0, snap.T, 1e-9)
	assert.Greater(t, snap.State[vehicle.VelZ], 0.0)
	assert.Greater(t, snap.State[vehicle.PosZ], 0.0)
	assert.Zero(t, snap.State[vehicle.VelX])
	assert.Zero(t, snap.State[vehicle.VelY])
	assert.Len(t, c.History(), 100)
	assert.Greater(t, snap.Stats.MaxAltitude, 0.0)
	assert.Greater(t, snap.Stats.MassSpent, 0.0)
}

func TestDeterminism(t *testing.T) {
	run := func() []float64 {
		c := newController()
		c.SetThrottle(0.8)
		require.NoError(t, c.SetGimbal(0.1, -0.05))
		require.NoError(t, c.Start())
		for i := 0; i < 300; i++ {
			require.NoError(t, c.Tick())
		}
		return c.Snapshot().State
	}

	a := run()
	b := run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("states differ at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestQuaternionNormInvariant(t *testing.T) {
	c := newController()
	c.SetThrottle(1.0)
	require.NoError(t, c.SetGimbal(10*math.Pi/180, 5*math.Pi/180))
	require.NoError(t, c.Start())

	for i := 0; i < 500; i++ {
		require.NoError(t, c.Tick())
		q := vehicle.Orientation(c.Snapshot().State)
		n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
		assert.InDelta(t, 1.0, n, 1e-6, "step %d", i)
	}
}

func TestMassFloorInvariant(t *testing.T) {
	veh := vehicle.New()
	c := New(veh, integrators.NewRK4(), DefaultOptions())
	c.SetThrottle(1.0)
	require.NoError(t, c.Start())

	for i := 0; i < 3000; i++ {
		require.NoError(t, c.Tick())
		if i%500 == 0 {
			c.Stage()
		}
		m := c.Snapshot().State[vehicle.Mass]
		assert.GreaterOrEqual(t, m, veh.DryMass, "step %d", i)
	}
}

func TestStageIndependentOfPhase(t *testing.T) {
	veh := vehicle.New()
	c := New(veh, integrators.NewRK4(), DefaultOptions())

	c.Stage()
	assert.InDelta(t, veh.InitialMass-veh.StageDropMass, c.Snapshot().State[vehicle.Mass], 1e-12)
	assert.Equal(t, PhaseIdle, c.Phase())

	require.NoError(t, c.Start())
	c.Stage()
	assert.Equal(t, PhaseRunning, c.Phase())
	assert.Len(t, c.StageEvents(), 2)
}

func TestSoftGroundContact(t *testing.T) {
	c := newController()
	c.SetThrottle(0)

	require.NoError(t, c.Step())

	snap := c.Snapshot()
	assert.Equal(t, 0.0, snap.State[vehicle.PosZ], "position clamped to the ground plane")
	assert.GreaterOrEqual(t, snap.State[vehicle.VelZ], 0.0, "downward velocity zeroed")
	require.NotNil(t, snap.Contact)
	assert.False(t, snap.Contact.Hard)
	assert.NotEqual(t, PhasePaused, snap.Phase, "soft contact must not pause")
}

func TestHardLandingPauses(t *testing.T) {
	c := newController()
	c.SetThrottle(1.0)
	require.NoError(t, c.Start())

	// boost for a second, then cut the engine and fall
	for i := 0; i < 100; i++ {
		require.NoError(t, c.Tick())
	}
	c.SetThrottle(0)

	for i := 0; i < 2000 && c.Phase() == PhaseRunning; i++ {
		require.NoError(t, c.Tick())
	}

	snap := c.Snapshot()
	require.Equal(t, PhasePaused, snap.Phase, "hard impact must force a pause")
	require.NotNil(t, snap.Contact)
	assert.True(t, snap.Contact.Hard)
	assert.Greater(t, snap.Contact.Speed, DefaultOptions().HardLandingSpeed)
	assert.Equal(t, 0.0, snap.State[vehicle.PosZ])
	assert.GreaterOrEqual(t, snap.State[vehicle.VelZ], 0.0)
	assert.Contains(t, snap.PauseReason, "hard landing")
}

func TestRejectedStepLeavesStateIntact(t *testing.T) {
	veh := vehicle.New()
	veh.Inertia = 0 // torque division blows up
	c := New(veh, integrators.NewRK4(), DefaultOptions())
	c.SetThrottle(1.0)
	require.NoError(t, c.SetGimbal(0.2, 0))

	before := c.Snapshot().State

	err := c.Step()
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)

	var stepErr *dynamo.StepError
	assert.True(t, errors.As(err, &stepErr))

	assert.Equal(t, PhasePaused, c.Phase(), "degeneracy forces a pause")
	assert.Empty(t, c.History(), "rejected step must not be recorded")
	assert.Equal(t, before, c.Snapshot().State, "rejected step must not mutate state")
	assert.Contains(t, c.Snapshot().PauseReason, "degeneracy")
}

func TestResetClearsEverything(t *testing.T) {
	veh := vehicle.New()
	c := New(veh, integrators.NewRK4(), DefaultOptions())
	c.SetThrottle(1.0)
	require.NoError(t, c.Start())
	for i := 0; i < 50; i++ {
		require.NoError(t, c.Tick())
	}
	c.Stage()

	c.Reset()

	snap := c.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, 0.0, snap.T)
	assert.Equal(t, veh.InitialMass, snap.State[vehicle.Mass])
	assert.Empty(t, c.History())
	assert.Empty(t, c.StageEvents())
	assert.Zero(t, snap.Stats.MaxAltitude)
	assert.Zero(t, snap.Stats.Distance)
	assert.Nil(t, snap.Contact)
}

func TestHistoryIsOrderedAndStable(t *testing.T) {
	c := newController()
	c.SetThrottle(1.0)
	require.NoError(t, c.Start())
	for i := 0; i < 25; i++ {
		require.NoError(t, c.Tick())
	}

	h := c.History()
	require.Len(t, h, 25)
	for i := 1; i < len(h); i++ {
		assert.Greater(t, h[i].T, h[i-1].T)
	}

	// the returned slice is a snapshot of the log-so-far
	require.NoError(t, c.Tick())
	assert.Len(t, h, 25)
	assert.Len(t, c.History(), 26)
}
