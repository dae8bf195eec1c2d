package light

// DefaultShadowMapSize is the default width and height in texels of each spot light's
// shadow depth layer.
const DefaultShadowMapSize = 2048

// DefaultShadowNear is the near plane of the spot light shadow camera.
const DefaultShadowNear float32 = 0.5

// DefaultShadowFar is the far plane used when a spot light has no distance cutoff.
const DefaultShadowFar float32 = 500

// DefaultShadowBias is the depth bias applied by the viewer's spot lights.
const DefaultShadowBias float32 = -0.001

// MaxLights is the number of lights the frame uniform carries. Lights beyond this
// budget are not rendered.
const MaxLights = 4
