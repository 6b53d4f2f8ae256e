package vehicle

import "math"

// Quaternions are stored w-first: [w, x, y, z]. They encode the body-to-world
// rotation of the vehicle.

func quatMul(a, b [4]float64) [4]float64 {
	return [4]float64{
		a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3],
		a[0]*b[1] + a[1]*b[0] + a[2]*b[3] - a[3]*b[2],
		a[0]*b[2] - a[1]*b[3] + a[2]*b[0] + a[3]*b[1],
		a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + a[3]*b[0],
	}
}

// quatRotate rotates v from the body frame into the world frame. q must be
// unit length.
func quatRotate(q [4]float64, v [3]float64) [3]float64 {
	p := quatMul(quatMul(q, [4]float64{0, v[0], v[1], v[2]}), quatConj(q))
	return [3]float64{p[1], p[2], p[3]}
}

func quatConj(q [4]float64) [4]float64 {
	return [4]float64{q[0], -q[1], -q[2], -q[3]}
}

func quatNorm(q [4]float64) float64 {
	return math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// EulerAngles converts a unit quaternion to roll, pitch, yaw in radians
// (Z-Y-X convention). Used for HUD readouts only, never inside the dynamics.
func EulerAngles(q [4]float64) (roll, pitch, yaw float64) {
	w, x, y, z := q[0], q[1], q[2], q[3]

	roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	sinp := 2 * (w*y - z*x)
	if sinp >= 1 {
		pitch = math.Pi / 2
	} else if sinp <= -1 {
		pitch = -math.Pi / 2
	} else {
		pitch = math.Asin(sinp)
	}

	yaw = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return
}
