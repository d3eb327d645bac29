package scene

import "errors"

// Native type names of the built-in engine components.
const (
	TransformType     = "Transform"
	TextComponentType = "TextComponent"
	AudioSourceType   = "AudioSource"
)

// RegisterBuiltins registers the engine components every scene knows.
func RegisterBuiltins(r *Registry) error {
	return errors.Join(
		RegisterNative(r, TransformType, func() *Transform { return &Transform{} }),
		RegisterNative(r, TextComponentType, func() *TextComponent { return &TextComponent{} }),
		RegisterNative(r, AudioSourceType, func() *AudioSource { return &AudioSource{} }),
	)
}

type Transform struct {
	NativeComponent
}

func (t *Transform) Position() [3]float32 {
	return vec3(t.Property("position"))
}

func (t *Transform) SetPosition(v [3]float32) {
	t.SetProperty("position", v)
}

// Scale defaults to one on every axis.
func (t *Transform) Scale() [3]float32 {
	v, ok := t.Property("scale")
	if !ok {
		return [3]float32{1, 1, 1}
	}
	return vec3(v, true)
}

func (t *Transform) SetScale(v [3]float32) {
	t.SetProperty("scale", v)
}

type TextComponent struct {
	NativeComponent
}

func (c *TextComponent) Text() string {
	v, _ := c.Property("text")
	s, _ := v.(string)
	return s
}

func (c *TextComponent) SetText(text string) {
	c.SetProperty("text", text)
}

func (c *TextComponent) Scale() float32 {
	v, ok := c.Property("scale")
	if !ok {
		return 1
	}
	f, _ := v.(float32)
	return f
}

func (c *TextComponent) SetScale(scale float32) {
	c.SetProperty("scale", scale)
}

type AudioSource struct {
	NativeComponent
}

func (a *AudioSource) Playing() bool {
	v, _ := a.Property("playing")
	b, _ := v.(bool)
	return b
}

func (a *AudioSource) SetPlaying(playing bool) {
	a.SetProperty("playing", playing)
}

func (a *AudioSource) Volume() float32 {
	v, ok := a.Property("volume")
	if !ok {
		return 1
	}
	f, _ := v.(float32)
	return f
}

func (a *AudioSource) SetVolume(volume float32) {
	a.SetProperty("volume", volume)
}

func vec3(v any, ok bool) [3]float32 {
	if !ok {
		return [3]float32{}
	}
	out, _ := v.([3]float32)
	return out
}
