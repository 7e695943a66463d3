package locator

import "github.com/stretchr/testify/mock"

type MockHost struct {
	mock.Mock
}

func (_m *MockHost) Mobile() bool {
	ret := _m.Called()
	return ret.Bool(0)
}

func (_m *MockHost) EntryModule() *Module {
	ret := _m.Called()
	ret0 := ret.Get(0)
	if ret0 == nil {
		return nil
	}
	return ret0.(*Module)
}

func (_m *MockHost) StackFrames() []Frame {
	ret := _m.Called()
	ret0 := ret.Get(0)
	if ret0 == nil {
		return nil
	}
	return ret0.([]Frame)
}

func (_m *MockHost) LoadedModules() []*Module {
	ret := _m.Called()
	ret0 := ret.Get(0)
	if ret0 == nil {
		return nil
	}
	return ret0.([]*Module)
}

func (_m *MockHost) ExecutableExtension() string {
	ret := _m.Called()
	return ret.String(0)
}
