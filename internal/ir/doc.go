/*
Package ir defines the intermediate representation of an active workflow:
logical components and their port-level mapping, plus the physical
placement and materialized state of each instance.

# Entities

Logical components, addressed by workflow-local string name:

  - Actor: bears an ActorImage (code bytes, format tag, enabled-port sets,
    port schemas, inner-structure graph), annotations, logical ports, and
    zero or more PhysicalActor instances.
  - Resource: a platform-provided effect (e.g. http-ingress, file-log) with
    a class string, a string/string configuration map, logical ports, and
    instances.
  - SubFlow: a nested workflow fragment offloaded to a peer cluster.
  - Proxy: a boundary component carrying external ports (mappings to
    entities outside the workflow) plus corresponding internal logical
    ports.

Physical instances carry an InstanceId, a desired PhysicalPorts map, and an
optional materialized PhysicalPorts snapshot (present iff the instance has
been successfully started on its node).

# Port algebra

LogicalOutput is one of DirectTarget / AnyOfTargets / AllOfTargets / Topic.
LogicalInput is one of Direct / Topic. PhysicalOutput is one of Single / Any
/ All / Link. PhysicalInput is one of the implicit default or Link.

# Component capability set

Rather than a deep interface hierarchy, every logical component (Actor,
Resource, SubFlow, Proxy) implements the four-operation Component interface:
read/write logical ports, enumerate instance ids, enumerate physical
instances for split-view mutation during pipeline passes.
*/
package ir
