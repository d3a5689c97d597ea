package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/glsandbox/internal/engine/camera"
	"github.com/Faultbox/glsandbox/internal/engine/lighting"
	"github.com/Faultbox/glsandbox/internal/engine/renderer"
	"github.com/Faultbox/glsandbox/internal/engine/scene"
)

// Panel layout.
const (
	inspectorWidth = 340.0
	overlayMargin  = 10.0
)

// Actions are inspector requests the caller carries out after the GUI pass.
type Actions struct {
	ImportModel  bool
	SaveSettings bool
}

// DrawInspector draws the inspector window and applies its edits.
func DrawInspector(s *scene.Scene, cam *camera.Camera, settings *renderer.Settings) Actions {
	var act Actions

	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()

	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+workSize.X-inspectorWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(inspectorWidth, workSize.Y))
	if imgui.BeginV("Inspector", nil, imgui.WindowFlagsNoMove|imgui.WindowFlagsNoResize) {
		if imgui.Button("Import model...") {
			act.ImportModel = true
		}
		imgui.SameLine()
		if imgui.Button("Save settings") {
			act.SaveSettings = true
		}
		if imgui.TreeNodeExStrV("Entities", imgui.TreeNodeFlagsDefaultOpen) {
			for i := range s.Entities {
				s.Entities[i] = DrawEntityPanel(s.Entities[i])
			}
			imgui.TreePop()
		}
		if imgui.TreeNodeExStrV("Lights", imgui.TreeNodeFlagsNone) {
			for i := range s.Lights {
				s.Lights[i] = DrawLightPanel(s.Lights[i])
			}
			imgui.TreePop()
		}
		imgui.Separator()
		DrawCameraPanel(cam)
		imgui.Separator()
		DrawRenderPanel(settings)
	}
	imgui.End()

	return act
}

// DrawEntityPanel draws an entity's editable properties and returns the
// edited copy.
func DrawEntityPanel(e scene.Entity) scene.Entity {
	imgui.PushIDStr(e.ID.String())
	defer imgui.PopID()

	if !imgui.TreeNodeExStrV(fmt.Sprintf("%s (%s)", e.Name, e.Kind), imgui.TreeNodeFlagsNone) {
		return e
	}
	defer imgui.TreePop()

	imgui.DragFloat3V("Position", (*[3]float32)(&e.Position), 0.1, 0, 0, "%.2f", imgui.SliderFlagsNone)
	imgui.DragFloat3V("Scale", (*[3]float32)(&e.Scale), 0.01, 0.01, 100, "%.2f", imgui.SliderFlagsNone)

	imgui.SliderFloatV("Angle", &e.Rotation[0], 0, 360, "%.0f deg", imgui.SliderFlagsNone)
	axis := [3]float32{e.Rotation[1], e.Rotation[2], e.Rotation[3]}
	if imgui.DragFloat3V("Axis", &axis, 0.01, -1, 1, "%.2f", imgui.SliderFlagsNone) {
		e.Rotation[1], e.Rotation[2], e.Rotation[3] = axis[0], axis[1], axis[2]
	}

	imgui.ColorEdit4V("Color", (*[4]float32)(&e.Color), imgui.ColorEditFlagsNone)
	imgui.Checkbox("Selected", &e.Selected)
	if e.Kind == scene.MeshQuad || e.Kind == scene.Model {
		imgui.Checkbox("Transparent", &e.Transparent)
	}
	return e
}

// DrawLightPanel draws a light's editable properties and returns the
// edited copy. Directional lights are aimed with azimuth and elevation.
func DrawLightPanel(l scene.Light) scene.Light {
	imgui.PushIDStr(l.ID.String())
	defer imgui.PopID()

	if !imgui.TreeNodeExStrV(fmt.Sprintf("%s (%s)", l.Name, l.Kind), imgui.TreeNodeFlagsNone) {
		return l
	}
	defer imgui.TreePop()

	switch l.Kind {
	case lighting.Directional:
		lon, lat := lighting.SunAngles(l.Direction.Mul(-1))
		changed := imgui.SliderFloatV("Azimuth", &lon, -180, 180, "%.0f deg", imgui.SliderFlagsNone)
		changed = imgui.SliderFloatV("Elevation", &lat, -89, 89, "%.0f deg", imgui.SliderFlagsNone) || changed
		if changed {
			l.Direction = lighting.LightDirection(lon, lat)
		}
	case lighting.Point:
		imgui.DragFloat3V("Position", (*[3]float32)(&l.Position), 0.1, 0, 0, "%.2f", imgui.SliderFlagsNone)
	case lighting.Spot:
		imgui.TextDisabled("Follows the camera")
	}

	imgui.ColorEdit3V("Color", (*[3]float32)(&l.Color), imgui.ColorEditFlagsNone)
	imgui.SliderFloatV("Ambient", &l.AmbientStrength, 0, 1, "%.2f", imgui.SliderFlagsNone)
	imgui.SliderFloatV("Specular", &l.SpecularStrength, 0, 1, "%.2f", imgui.SliderFlagsNone)
	return l
}

// DrawCameraPanel shows the camera state and its tunable speeds.
func DrawCameraPanel(cam *camera.Camera) {
	if !imgui.TreeNodeExStrV("Camera", imgui.TreeNodeFlagsDefaultOpen) {
		return
	}
	defer imgui.TreePop()

	p := cam.Position
	imgui.Text(fmt.Sprintf("Position: %.2f, %.2f, %.2f", p[0], p[1], p[2]))
	imgui.Text(fmt.Sprintf("Yaw: %.1f  Pitch: %.1f  FOV: %.1f", cam.Yaw, cam.Pitch, cam.Zoom))
	imgui.SliderFloatV("Speed", &cam.MovementSpeed, 0.5, 20, "%.1f", imgui.SliderFlagsNone)
	imgui.SliderFloatV("Sensitivity", &cam.MouseSensitivity, 0.01, 1, "%.2f", imgui.SliderFlagsNone)
}

// DrawRenderPanel edits the renderer settings.
func DrawRenderPanel(s *renderer.Settings) {
	if !imgui.TreeNodeExStrV("Render", imgui.TreeNodeFlagsDefaultOpen) {
		return
	}
	defer imgui.TreePop()

	imgui.Text("Post effect")
	for _, e := range renderer.Effects() {
		if imgui.SelectableBoolV(e.String(), s.Effect == e, 0, imgui.NewVec2(0, 0)) {
			s.Effect = e
		}
	}
	imgui.Separator()
	imgui.ColorEdit4V("Outline", (*[4]float32)(&s.OutlineColor), imgui.ColorEditFlagsNone)
	imgui.ColorEdit4V("Clear", (*[4]float32)(&s.ClearColor), imgui.ColorEditFlagsNone)
	imgui.Checkbox("Light markers", &s.LightMarkers)
}

// DrawFPSOverlay draws the frame rate in the top-left corner.
func DrawFPSOverlay() {
	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoFocusOnAppearing | imgui.WindowFlagsNoInputs
	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+overlayMargin, workPos.Y+overlayMargin))
	imgui.SetNextWindowBgAlpha(0.35)
	if imgui.BeginV("##FPS", nil, flags) {
		imgui.Text(FrameRate(imgui.CurrentIO().Framerate()))
	}
	imgui.End()
}

// FrameRate formats a frame rate and its frame time.
func FrameRate(fps float32) string {
	if fps <= 0 {
		return "-- FPS"
	}
	return fmt.Sprintf("%.0f FPS (%.2f ms)", fps, 1000/fps)
}

