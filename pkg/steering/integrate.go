package steering

// Integrate advances the agent's orientation and velocity by dt seconds under
// cmd. The orientation moves with the angular velocity of the previous tick,
// then both velocities take the command. The resulting speed never exceeds
// maxSpeed; a faster velocity is rescaled keeping its direction.
//
// Position is left untouched: a physics collaborator owns it, or Advance
// moves it under simple kinematic movement.
func Integrate(k Kinematic, cmd Command, maxSpeed, dt float64) Kinematic {
	k.Orientation += k.AngularVelocity * dt
	k.AngularVelocity += cmd.Angular * dt
	k.Velocity = k.Velocity.Add(cmd.Linear.Mul(dt)).ClampLen(maxSpeed)
	return k
}

// Advance moves the agent along its velocity for dt seconds.
func Advance(k Kinematic, dt float64) Kinematic {
	k.Position = k.Position.Add(k.Velocity.Mul(dt))
	return k
}

// Apply integrates the output's command and honours its pinned orientation.
func (o Output) Apply(k Kinematic, maxSpeed, dt float64) Kinematic {
	k = Integrate(k, o.Command, maxSpeed, dt)
	if o.PinnedOrientation != nil {
		k.Orientation = *o.PinnedOrientation
		k.AngularVelocity = 0
	}
	return k
}
