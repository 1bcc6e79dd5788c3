// Package v1 holds the asyncbutton.v1.ButtonService gRPC plumbing: the
// service descriptor, the client stub and the server registration.
//
// Messages are protobuf well-known types. Requests and responses that carry
// data are google.protobuf.Struct documents whose keys are the Field*
// constants; empty requests are google.protobuf.Empty. The document schema is
// written down as typed messages in api/asyncbutton/v1/button.proto.
package v1
