// Package skeleton - Body part and limb topology for 18-keypoint pose models.
package skeleton

import "fmt"

// PartType is one of the 18 body part categories a pose model predicts a
// confidence heatmap for.
type PartType int

// PartType constants in heatmap channel order.
const (
	Nose PartType = iota
	Neck
	RightShoulder
	RightElbow
	RightWrist
	LeftShoulder
	LeftElbow
	LeftWrist
	RightHip
	RightKnee
	RightAnkle
	LeftHip
	LeftKnee
	LeftAnkle
	RightEye
	LeftEye
	RightEar
	LeftEar
)

const (
	// PartCount is the number of body part heatmap channels.
	PartCount = 18
	// HeatmapChannels is PartCount plus the trailing background channel.
	HeatmapChannels = PartCount + 1
	// LimbCount is the number of limb types in the topology.
	LimbCount = 19
	// VectorFieldChannels is the number of part affinity field channels,
	// two per limb type.
	VectorFieldChannels = 2 * LimbCount
	// BodyLimbCount is the number of leading limb types allowed to start a new
	// skeleton. The trailing limbs connect shoulders to ears and only extend
	// skeletons that already exist.
	BodyLimbCount = 17
)

var partNames = [PartCount]string{
	"nose",
	"neck",
	"right_shoulder",
	"right_elbow",
	"right_wrist",
	"left_shoulder",
	"left_elbow",
	"left_wrist",
	"right_hip",
	"right_knee",
	"right_ankle",
	"left_hip",
	"left_knee",
	"left_ankle",
	"right_eye",
	"left_eye",
	"right_ear",
	"left_ear",
}

// String returns the snake_case name of the part.
func (p PartType) String() string {
	if !p.Valid() {
		return fmt.Sprintf("part(%d)", int(p))
	}
	return partNames[p]
}

// Valid reports whether p is one of the 18 part types.
func (p PartType) Valid() bool {
	return p >= 0 && p < PartCount
}

// Limb connects two part types and names the pair of vector field channels
// that encode its direction.
type Limb struct {
	// A is the part type the limb starts from.
	A PartType
	// B is the part type the limb ends at.
	B PartType
	// ChannelX is the vector field channel holding the x component.
	ChannelX int
	// ChannelY is the vector field channel holding the y component.
	ChannelY int
}

// Limbs is the fixed limb topology in processing order. The order matters:
// assembly walks limbs in this sequence and only the first BodyLimbCount
// entries may open a new skeleton.
var Limbs = [LimbCount]Limb{
	{A: Neck, B: RightShoulder, ChannelX: 12, ChannelY: 13},
	{A: Neck, B: LeftShoulder, ChannelX: 20, ChannelY: 21},
	{A: RightShoulder, B: RightElbow, ChannelX: 14, ChannelY: 15},
	{A: RightElbow, B: RightWrist, ChannelX: 16, ChannelY: 17},
	{A: LeftShoulder, B: LeftElbow, ChannelX: 22, ChannelY: 23},
	{A: LeftElbow, B: LeftWrist, ChannelX: 24, ChannelY: 25},
	{A: Neck, B: RightHip, ChannelX: 0, ChannelY: 1},
	{A: RightHip, B: RightKnee, ChannelX: 2, ChannelY: 3},
	{A: RightKnee, B: RightAnkle, ChannelX: 4, ChannelY: 5},
	{A: Neck, B: LeftHip, ChannelX: 6, ChannelY: 7},
	{A: LeftHip, B: LeftKnee, ChannelX: 8, ChannelY: 9},
	{A: LeftKnee, B: LeftAnkle, ChannelX: 10, ChannelY: 11},
	{A: Neck, B: Nose, ChannelX: 28, ChannelY: 29},
	{A: Nose, B: RightEye, ChannelX: 30, ChannelY: 31},
	{A: RightEye, B: RightEar, ChannelX: 34, ChannelY: 35},
	{A: Nose, B: LeftEye, ChannelX: 32, ChannelY: 33},
	{A: LeftEye, B: LeftEar, ChannelX: 36, ChannelY: 37},
	{A: RightShoulder, B: RightEar, ChannelX: 18, ChannelY: 19},
	{A: LeftShoulder, B: LeftEar, ChannelX: 26, ChannelY: 27},
}

// String returns "a->b" using part names.
func (l Limb) String() string {
	return l.A.String() + "->" + l.B.String()
}
