package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts azimuth/elevation angles in degrees to a unit vector
// pointing towards the sun. Longitude is rotation around Y from +Z, latitude
// is elevation above the horizon.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lonRad := float64(longitude) * math.Pi / 180.0
	latRad := float64(latitude) * math.Pi / 180.0

	// Spherical to Cartesian conversion
	x := float32(math.Cos(latRad) * math.Sin(lonRad))
	y := float32(math.Sin(latRad))
	z := float32(math.Cos(latRad) * math.Cos(lonRad))

	return mgl32.Vec3{x, y, z}
}

// SunAngles is the inverse of SunDirection for a vector pointing towards
// the sun.
func SunAngles(toSun mgl32.Vec3) (longitude, latitude float32) {
	if toSun.Len() == 0 {
		return 0, 0
	}
	d := toSun.Normalize()
	lat := math.Asin(float64(mgl32.Clamp(d[1], -1, 1)))
	lon := math.Atan2(float64(d[0]), float64(d[2]))
	return float32(lon * 180 / math.Pi), float32(lat * 180 / math.Pi)
}

// LightDirection returns the direction light travels for a sun at the
// given angles, as used by directional lights.
func LightDirection(longitude, latitude float32) mgl32.Vec3 {
	return SunDirection(longitude, latitude).Mul(-1)
}
