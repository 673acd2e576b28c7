package schema

// DeploymentState tracks preview and permanent deployments for a session.
type DeploymentState struct {
	IsDeploying        bool   `json:"is_deploying"`
	URL                string `json:"url,omitempty"`
	Error              string `json:"error,omitempty"`
	IsRedeployReady    bool   `json:"is_redeploy_ready"`
	IsPreviewDeploying bool   `json:"is_preview_deploying"`
	PreviewURL         string `json:"preview_url,omitempty"`
}
