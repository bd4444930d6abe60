package mocks

import (
	"context"

	"github.com/bnema/segbench/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MediaCodecMock is a testify mock of port.MediaCodec in the mockery expecter style.
type MediaCodecMock struct {
	mock.Mock
}

type MediaCodecMock_Expecter struct {
	mock *mock.Mock
}

func (_m *MediaCodecMock) EXPECT() *MediaCodecMock_Expecter {
	return &MediaCodecMock_Expecter{mock: &_m.Mock}
}

// NewMediaCodecMock registers a cleanup that asserts all expectations.
func NewMediaCodecMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *MediaCodecMock {
	m := &MediaCodecMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *MediaCodecMock) Probe(ctx context.Context, inputPath string) (*domain.ProbeResult, error) {
	ret := _m.Called(ctx, inputPath)

	var r0 *domain.ProbeResult
	if rf, ok := ret.Get(0).(func(context.Context, string) *domain.ProbeResult); ok {
		r0 = rf(ctx, inputPath)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.ProbeResult)
	}
	return r0, ret.Error(1)
}

type MediaCodecMock_Probe_Call struct {
	*mock.Call
}

func (_e *MediaCodecMock_Expecter) Probe(ctx interface{}, inputPath interface{}) *MediaCodecMock_Probe_Call {
	return &MediaCodecMock_Probe_Call{Call: _e.mock.On("Probe", ctx, inputPath)}
}

func (_c *MediaCodecMock_Probe_Call) Return(result *domain.ProbeResult, err error) *MediaCodecMock_Probe_Call {
	_c.Call.Return(result, err)
	return _c
}

func (_m *MediaCodecMock) Transform(ctx context.Context, inputPath, outputPath string) error {
	ret := _m.Called(ctx, inputPath, outputPath)
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		return rf(ctx, inputPath, outputPath)
	}
	return ret.Error(0)
}

type MediaCodecMock_Transform_Call struct {
	*mock.Call
}

func (_e *MediaCodecMock_Expecter) Transform(ctx interface{}, inputPath interface{}, outputPath interface{}) *MediaCodecMock_Transform_Call {
	return &MediaCodecMock_Transform_Call{Call: _e.mock.On("Transform", ctx, inputPath, outputPath)}
}

func (_c *MediaCodecMock_Transform_Call) Return(err error) *MediaCodecMock_Transform_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MediaCodecMock_Transform_Call) RunAndReturn(run func(context.Context, string, string) error) *MediaCodecMock_Transform_Call {
	_c.Call.Return(run)
	return _c
}

func (_m *MediaCodecMock) ExtractSegment(ctx context.Context, seg domain.Segment, outputPath string) error {
	ret := _m.Called(ctx, seg, outputPath)
	if rf, ok := ret.Get(0).(func(context.Context, domain.Segment, string) error); ok {
		return rf(ctx, seg, outputPath)
	}
	return ret.Error(0)
}

type MediaCodecMock_ExtractSegment_Call struct {
	*mock.Call
}

func (_e *MediaCodecMock_Expecter) ExtractSegment(ctx interface{}, seg interface{}, outputPath interface{}) *MediaCodecMock_ExtractSegment_Call {
	return &MediaCodecMock_ExtractSegment_Call{Call: _e.mock.On("ExtractSegment", ctx, seg, outputPath)}
}

func (_c *MediaCodecMock_ExtractSegment_Call) Return(err error) *MediaCodecMock_ExtractSegment_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MediaCodecMock_ExtractSegment_Call) RunAndReturn(run func(context.Context, domain.Segment, string) error) *MediaCodecMock_ExtractSegment_Call {
	_c.Call.Return(run)
	return _c
}

func (_m *MediaCodecMock) Concat(ctx context.Context, inputPaths []string, outputPath string) error {
	ret := _m.Called(ctx, inputPaths, outputPath)
	if rf, ok := ret.Get(0).(func(context.Context, []string, string) error); ok {
		return rf(ctx, inputPaths, outputPath)
	}
	return ret.Error(0)
}

type MediaCodecMock_Concat_Call struct {
	*mock.Call
}

func (_e *MediaCodecMock_Expecter) Concat(ctx interface{}, inputPaths interface{}, outputPath interface{}) *MediaCodecMock_Concat_Call {
	return &MediaCodecMock_Concat_Call{Call: _e.mock.On("Concat", ctx, inputPaths, outputPath)}
}

func (_c *MediaCodecMock_Concat_Call) Return(err error) *MediaCodecMock_Concat_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MediaCodecMock_Concat_Call) RunAndReturn(run func(context.Context, []string, string) error) *MediaCodecMock_Concat_Call {
	_c.Call.Return(run)
	return _c
}

func (_m *MediaCodecMock) Extension() string {
	ret := _m.Called()
	return ret.String(0)
}

type MediaCodecMock_Extension_Call struct {
	*mock.Call
}

func (_e *MediaCodecMock_Expecter) Extension() *MediaCodecMock_Extension_Call {
	return &MediaCodecMock_Extension_Call{Call: _e.mock.On("Extension")}
}

func (_c *MediaCodecMock_Extension_Call) Return(ext string) *MediaCodecMock_Extension_Call {
	_c.Call.Return(ext)
	return _c
}
