package plugin

import (
	"context"
	"net/rpc"

	hashiplug "github.com/hashicorp/go-plugin"

	"inferplug/pkg/types"
)

// HandshakeConfig must match between host and plugin.
var HandshakeConfig = hashiplug.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "INFERPLUG_PLUGIN",
	MagicCookieValue: "inferplug-v1",
}

// PluginName is the key the plugin is dispensed under.
const PluginName = "inferplug"

// PluginMap is the set of plugins a host can dispense.
var PluginMap = map[string]hashiplug.Plugin{
	PluginName: &RPCPlugin{},
}

// Host is what a host process sees after dispensing the plugin.
type Host interface {
	Info() (types.PluginInfo, error)
	Services() ([]types.ServiceDescriptor, error)
	ListMethods(service string) ([]types.ServiceMethod, error)
	// Invoke returns a *types.ServiceError for service failures and a plain
	// error for transport failures.
	Invoke(service, method string, args []byte) (string, error)
}

// InvokeArgs is the net/rpc request of Plugin.Invoke.
type InvokeArgs struct {
	Service string
	Method  string
	Args    []byte
}

// InvokeReply is the net/rpc response of Plugin.Invoke.
type InvokeReply struct {
	Result string
	Error  *types.ServiceError
}

// MethodsReply is the net/rpc response of Plugin.ListMethods.
type MethodsReply struct {
	Methods []types.ServiceMethod
	Error   *types.ServiceError
}

// RPCServer exposes a Plugin over net/rpc.
type RPCServer struct {
	Impl *Plugin
}

func (s *RPCServer) Info(_ any, reply *types.PluginInfo) error {
	*reply = s.Impl.Info()
	return nil
}

func (s *RPCServer) Services(_ any, reply *[]types.ServiceDescriptor) error {
	*reply = s.Impl.Services()
	return nil
}

func (s *RPCServer) ListMethods(service string, reply *MethodsReply) error {
	reply.Methods, reply.Error = s.Impl.ListMethods(service)
	return nil
}

func (s *RPCServer) Invoke(args InvokeArgs, reply *InvokeReply) error {
	reply.Result, reply.Error = s.Impl.Invoke(context.Background(), args.Service, args.Method, args.Args)
	return nil
}

// RPCClient is the host-side stub.
type RPCClient struct {
	client *rpc.Client
}

var _ Host = (*RPCClient)(nil)

func (c *RPCClient) Info() (types.PluginInfo, error) {
	var info types.PluginInfo
	err := c.client.Call("Plugin.Info", new(any), &info)
	return info, err
}

func (c *RPCClient) Services() ([]types.ServiceDescriptor, error) {
	var out []types.ServiceDescriptor
	err := c.client.Call("Plugin.Services", new(any), &out)
	return out, err
}

func (c *RPCClient) ListMethods(service string) ([]types.ServiceMethod, error) {
	var reply MethodsReply
	if err := c.client.Call("Plugin.ListMethods", service, &reply); err != nil {
		return nil, err
	}
	if reply.Error != nil {
		return nil, reply.Error
	}
	return reply.Methods, nil
}

func (c *RPCClient) Invoke(service, method string, args []byte) (string, error) {
	var reply InvokeReply
	if err := c.client.Call("Plugin.Invoke", InvokeArgs{Service: service, Method: method, Args: args}, &reply); err != nil {
		return "", err
	}
	if reply.Error != nil {
		return "", reply.Error
	}
	return reply.Result, nil
}

// RPCPlugin implements hashiplug.Plugin. Impl is only set in the plugin process.
type RPCPlugin struct {
	Impl *Plugin
}

func (p *RPCPlugin) Server(*hashiplug.MuxBroker) (any, error) {
	return &RPCServer{Impl: p.Impl}, nil
}

func (p *RPCPlugin) Client(_ *hashiplug.MuxBroker, c *rpc.Client) (any, error) {
	return &RPCClient{client: c}, nil
}

// Serve runs p as a go-plugin server on stdio until the host disconnects.
func Serve(p *Plugin, opts ...func(*hashiplug.ServeConfig)) {
	cfg := &hashiplug.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]hashiplug.Plugin{
			PluginName: &RPCPlugin{Impl: p},
		},
	}
	for _, o := range opts {
		o(cfg)
	}
	hashiplug.Serve(cfg)
}
