package semantic

import (
	"strings"

	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

type PortKind int

const (
	PortNone PortKind = iota
	RPortSenderReceiver
	RPortClientServer
	PPortClientServer
	PPortSenderReceiver
)

func (k PortKind) String() string {
	switch k {
	case RPortSenderReceiver:
		return "R-PORT sender-receiver"
	case RPortClientServer:
		return "R-PORT client-server"
	case PPortClientServer:
		return "P-PORT client-server"
	case PPortSenderReceiver:
		return "P-PORT sender-receiver"
	}
	return "none"
}

func (k PortKind) IsRequired() bool {
	return k == RPortSenderReceiver || k == RPortClientServer
}

func (k PortKind) IsClientServer() bool {
	return k == RPortClientServer || k == PPortClientServer
}

const (
	rPortTag = "R-PORT-PROTOTYPE"
	pPortTag = "P-PORT-PROTOTYPE"
)

// IsPortsElement reports whether n sits directly under a PORTS element.
func IsPortsElement(n *parser.Element) bool {
	return n != nil && n.Parent != nil && strings.EqualFold(n.Parent.Tag, "PORTS")
}

func IsRPort(n *parser.Element) bool {
	return n != nil && strings.EqualFold(n.Tag, rPortTag)
}

func IsPPort(n *parser.Element) bool {
	return n != nil && strings.EqualFold(n.Tag, pPortTag)
}

// InterfaceTRef returns the first direct child of n whose tag contains
// REQUIRED-INTERFACE-TREF or PROVIDED-INTERFACE-TREF.
func InterfaceTRef(n *parser.Element) *parser.Element {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if containsFold(c.Tag, "required-interface-tref") || containsFold(c.Tag, "provided-interface-tref") {
			return c
		}
	}
	return nil
}

// InterfaceRef returns the interface reference of a port.
func InterfaceRef(n *parser.Element) (Reference, bool) {
	tref := InterfaceTRef(n)
	if tref == nil {
		return Reference{}, false
	}
	return ReferenceOf(tref), true
}

// ClassifyPort maps a port prototype to its kind from the DEST attribute of
// its interface reference. A P-port whose interface is not client-server is
// treated as sender-receiver.
func ClassifyPort(n *parser.Element) PortKind {
	r, p := IsRPort(n), IsPPort(n)
	if !r && !p {
		return PortNone
	}
	tref := InterfaceTRef(n)
	if tref == nil {
		return PortNone
	}
	dest := tref.GetAttribute("DEST")
	cs := containsFold(dest, "CLIENT-SERVER-INTERFACE")
	sr := containsFold(dest, "SENDER-RECEIVER-INTERFACE")
	switch {
	case r && sr:
		return RPortSenderReceiver
	case r && cs:
		return RPortClientServer
	case p && cs:
		return PPortClientServer
	case p:
		return PPortSenderReceiver
	}
	return PortNone
}

func IsRPortSenderReceiver(n *parser.Element) bool { return ClassifyPort(n) == RPortSenderReceiver }
func IsRPortClientServer(n *parser.Element) bool   { return ClassifyPort(n) == RPortClientServer }
func IsPPortClientServer(n *parser.Element) bool   { return ClassifyPort(n) == PPortClientServer }
func IsPPortSenderReceiver(n *parser.Element) bool { return ClassifyPort(n) == PPortSenderReceiver }

// Port is a classified port prototype.
type Port struct {
	Element   *parser.Element
	Name      string
	Kind      PortKind
	Interface Reference
}

// Ports lists every R/P port prototype below root in document order.
func Ports(root *parser.Element) []Port {
	var res []Port
	if root == nil {
		return res
	}
	root.Walk(func(e *parser.Element) bool {
		if !IsRPort(e) && !IsPPort(e) {
			return true
		}
		ref, _ := InterfaceRef(e)
		res = append(res, Port{
			Element:   e,
			Name:      DisplayName(e),
			Kind:      ClassifyPort(e),
			Interface: ref,
		})
		return false
	})
	return res
}
