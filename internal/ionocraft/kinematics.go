package ionocraft

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// bodyToWorld is the Z-Y-X (yaw, pitch, roll) rotation taking body-frame
// vectors to the world frame. Its transpose goes the other way.
func bodyToWorld(yaw, pitch, roll float64) mgl64.Mat3 {
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	sr, cr := math.Sincos(roll)
	return mgl64.Mat3FromRows(
		mgl64.Vec3{cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr},
		mgl64.Vec3{sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr},
		mgl64.Vec3{-sp, cp * sr, cp * cr},
	)
}

// eulerRates maps body angular velocity (wx, wy, wz) to
// (yaw, pitch, roll) rates. Singular where cos(pitch) = 0; no guard.
func eulerRates(pitch, roll float64) mgl64.Mat3 {
	sr, cr := math.Sincos(roll)
	cp := math.Cos(pitch)
	tp := math.Tan(pitch)
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, sr / cp, cr / cp},
		mgl64.Vec3{0, cr, -sr},
		mgl64.Vec3{1, sr * tp, cr * tp},
	)
}

// skew returns the cross-product matrix of w: skew(w)*v == w × v.
func skew(w mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{0, -w[2], w[1]},
		mgl64.Vec3{w[2], 0, -w[0]},
		mgl64.Vec3{-w[1], w[0], 0},
	)
}
