package mocks

import (
	"context"

	"github.com/bnema/segbench/internal/domain"
	"github.com/stretchr/testify/mock"
)

// RunStoreMock is a testify mock of port.RunStore in the mockery expecter style.
type RunStoreMock struct {
	mock.Mock
}

type RunStoreMock_Expecter struct {
	mock *mock.Mock
}

func (_m *RunStoreMock) EXPECT() *RunStoreMock_Expecter {
	return &RunStoreMock_Expecter{mock: &_m.Mock}
}

func NewRunStoreMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *RunStoreMock {
	m := &RunStoreMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *RunStoreMock) Save(r *domain.Run) error {
	ret := _m.Called(r)
	if rf, ok := ret.Get(0).(func(*domain.Run) error); ok {
		return rf(r)
	}
	return ret.Error(0)
}

type RunStoreMock_Save_Call struct {
	*mock.Call
}

func (_e *RunStoreMock_Expecter) Save(r interface{}) *RunStoreMock_Save_Call {
	return &RunStoreMock_Save_Call{Call: _e.mock.On("Save", r)}
}

func (_c *RunStoreMock_Save_Call) Return(err error) *RunStoreMock_Save_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *RunStoreMock_Save_Call) RunAndReturn(run func(*domain.Run) error) *RunStoreMock_Save_Call {
	_c.Call.Return(run)
	return _c
}

func (_m *RunStoreMock) Get(id string) (*domain.Run, error) {
	ret := _m.Called(id)

	var r0 *domain.Run
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Run)
	}
	return r0, ret.Error(1)
}

type RunStoreMock_Get_Call struct {
	*mock.Call
}

func (_e *RunStoreMock_Expecter) Get(id interface{}) *RunStoreMock_Get_Call {
	return &RunStoreMock_Get_Call{Call: _e.mock.On("Get", id)}
}

func (_c *RunStoreMock_Get_Call) Return(run *domain.Run, err error) *RunStoreMock_Get_Call {
	_c.Call.Return(run, err)
	return _c
}

func (_m *RunStoreMock) List(limit int) ([]*domain.Run, error) {
	ret := _m.Called(limit)

	var r0 []*domain.Run
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*domain.Run)
	}
	return r0, ret.Error(1)
}

type RunStoreMock_List_Call struct {
	*mock.Call
}

func (_e *RunStoreMock_Expecter) List(limit interface{}) *RunStoreMock_List_Call {
	return &RunStoreMock_List_Call{Call: _e.mock.On("List", limit)}
}

func (_c *RunStoreMock_List_Call) Return(runs []*domain.Run, err error) *RunStoreMock_List_Call {
	_c.Call.Return(runs, err)
	return _c
}

func (_m *RunStoreMock) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}

// ArtifactPublisherMock is a testify mock of port.ArtifactPublisher.
type ArtifactPublisherMock struct {
	mock.Mock
}

type ArtifactPublisherMock_Expecter struct {
	mock *mock.Mock
}

func (_m *ArtifactPublisherMock) EXPECT() *ArtifactPublisherMock_Expecter {
	return &ArtifactPublisherMock_Expecter{mock: &_m.Mock}
}

func NewArtifactPublisherMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *ArtifactPublisherMock {
	m := &ArtifactPublisherMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (_m *ArtifactPublisherMock) Publish(ctx context.Context, run *domain.Run) (string, error) {
	ret := _m.Called(ctx, run)
	return ret.String(0), ret.Error(1)
}

type ArtifactPublisherMock_Publish_Call struct {
	*mock.Call
}

func (_e *ArtifactPublisherMock_Expecter) Publish(ctx interface{}, run interface{}) *ArtifactPublisherMock_Publish_Call {
	return &ArtifactPublisherMock_Publish_Call{Call: _e.mock.On("Publish", ctx, run)}
}

func (_c *ArtifactPublisherMock_Publish_Call) Return(uri string, err error) *ArtifactPublisherMock_Publish_Call {
	_c.Call.Return(uri, err)
	return _c
}

func (_m *ArtifactPublisherMock) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}
