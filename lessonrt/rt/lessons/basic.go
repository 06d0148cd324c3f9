package lessons

import (
	"github.com/gekko3d/fundamentals/lessonrt/rt/core"
	"github.com/gekko3d/fundamentals/lessonrt/rt/frame"
	"github.com/gekko3d/fundamentals/lessonrt/rt/shaders"
)

// buildTriangle draws the triangle hard-coded in the vertex shader.
func buildTriangle(env Env, s *frame.Scene) error {
	if err := env.pipeline(s, core.PipelineDesc{Label: "triangle", Shader: shaders.TriangleWGSL}); err != nil {
		return err
	}
	s.Draw = frame.DrawCall{Count: 3}
	return nil
}

// buildInterstage passes a color per vertex to the fragment stage, which sees it interpolated.
func buildInterstage(env Env, s *frame.Scene) error {
	if err := env.pipeline(s, core.PipelineDesc{Label: "interstage", Shader: shaders.InterstageWGSL}); err != nil {
		return err
	}
	s.Draw = frame.DrawCall{Count: 3}
	return nil
}

func buildCheckerboard(env Env, s *frame.Scene) error {
	if err := env.pipeline(s, core.PipelineDesc{Label: "checkerboard", Shader: shaders.CheckerboardWGSL}); err != nil {
		return err
	}
	s.Draw = frame.DrawCall{Count: 6}
	return nil
}
