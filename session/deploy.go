package session

import "github.com/zlillymp/forgeline/schema"

func applyPreviewDeployCompleted(s *State, payload *schema.DeploymentEvent) {
	s.Deployment.IsPreviewDeploying = false
	if payload != nil && payload.URL != "" {
		s.Deployment.PreviewURL = payload.URL
	}
}

func applyPreviewDeployFailed(s *State, payload *schema.DeploymentEvent) {
	s.Deployment.IsPreviewDeploying = false
	if payload != nil {
		s.Deployment.Error = deployErrText(payload)
	}
	appendSystemMessage(s, "preview deployment failed: "+deployErrText(payload))
}

func applyDeployCompleted(s *State, payload *schema.DeploymentEvent) {
	s.Deployment.IsDeploying = false
	s.Deployment.Error = ""
	s.Deployment.IsRedeployReady = false
	if payload != nil && payload.URL != "" {
		s.Deployment.URL = payload.URL
	}
}

// A deployment error resets the in-progress flag and re-enables redeploy so
// the user can retry; the client never retries deployments on its own.
func applyDeployError(s *State, payload *schema.DeploymentEvent) {
	s.Deployment.IsDeploying = false
	s.Deployment.Error = deployErrText(payload)
	s.Deployment.IsRedeployReady = true
	appendSystemMessage(s, "deployment failed: "+deployErrText(payload))
}

func deployErrText(payload *schema.DeploymentEvent) string {
	if payload == nil {
		return "unknown error"
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Message != "" {
		return payload.Message
	}
	return "unknown error"
}
