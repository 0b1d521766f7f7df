package protocolregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
	"github.com/s3a-spatialaudio/VISR-sub001/parameter"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/doublebuffering"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/messagequeue"
	"github.com/s3a-spatialaudio/VISR-sub001/protocol/shareddata"
)

func TestNew(t *testing.T) {
	params, protocols, err := New()
	require.NoError(t, err)

	assert.Equal(t, []string{doublebuffering.Name, messagequeue.Name, shareddata.Name}, protocols.List())
	assert.Len(t, params.List(), len(parameter.Defaults()))
	assert.Same(t, params, protocols.Parameters())
}

func TestRegisterNilRegistry(t *testing.T) {
	err := Register(nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestRegisterTwiceFails(t *testing.T) {
	params, protocols, err := New()
	require.NoError(t, err)

	err = Register(params, protocols)
	require.Error(t, err)
	assert.True(t, errors.IsInternal(err))
	assert.True(t, errors.Is(err, errors.ErrConflictingRegistration))
}

func TestCreateEveryProtocolForEveryScalar(t *testing.T) {
	_, protocols, err := New()
	require.NoError(t, err)

	for _, name := range protocols.List() {
		for _, paramType := range []parameter.TypeID{
			parameter.TypeDouble, parameter.TypeFloat, parameter.TypeInteger,
			parameter.TypeUnsignedInteger, parameter.TypeBoolean,
		} {
			id := protocol.ID(name)
			p, err := protocols.CreateProtocol(id, paramType, nil)
			require.NoError(t, err, name)
			assert.Equal(t, id, p.ProtocolType())
			assert.Equal(t, paramType, p.ParameterType())
		}
	}
}
