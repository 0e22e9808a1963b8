/*
Package session manages visualization surfaces.

A surface is one independently controlled animation: a step Player, a live
run controller and the tree its structural operations mutate. The Manager
creates surfaces on demand and serializes control commands per surface, both
in process and, with a DistributedLocker, across replicas.
*/
package session
