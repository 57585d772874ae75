package notifications

// Built-in templates used when the EmailTemplates collection has no active
// row for a type. Subjects and bodies carry the same placeholder names the
// hooks populate.
var defaultTemplates = map[string]Template{
	string(EventProcedureUploaded): {
		Type:    string(EventProcedureUploaded),
		Subject: "New Procedure Uploaded: {{procedureName}}",
		HTMLContent: "<p>A new procedure has been uploaded to the Procedures Hub.</p>" +
			"<table><tr><td>Procedure</td><td>{{procedureName}}</td></tr>" +
			"<tr><td>Owner</td><td>{{ownerName}}</td></tr>" +
			"<tr><td>LOB</td><td>{{lob}}</td></tr>" +
			"<tr><td>Uploaded</td><td>{{uploadDate}}</td></tr>" +
			"<tr><td>Quality Score</td><td>{{qualityScore}}</td></tr></table>",
	},
	string(EventProcedureUpdated): {
		Type:    string(EventProcedureUpdated),
		Subject: "Procedure Updated: {{procedureName}}",
		HTMLContent: "<p>The procedure <b>{{procedureName}}</b> ({{lob}}) was updated by " +
			"{{updatedBy}} on {{updateDate}}.</p>",
	},
	string(EventLowQualityScore): {
		Type:    string(EventLowQualityScore),
		Subject: "Low Quality Score: {{procedureName}}",
		HTMLContent: "<p>The procedure <b>{{procedureName}}</b> scored {{qualityScore}} " +
			"on upload, below the acceptance threshold. Please review and resubmit.</p>",
	},
	string(EventProcedureExpiring): {
		Type:    string(EventProcedureExpiring),
		Subject: "Procedure Expiring Soon: {{procedureName}}",
		HTMLContent: "<p>The procedure <b>{{procedureName}}</b> ({{lob}}) expires in " +
			"{{daysLeft}} day(s), on {{expiryDate}}. Please review and renew it.</p>",
	},
	string(EventProcedureExpired): {
		Type:    string(EventProcedureExpired),
		Subject: "Procedure Expired: {{procedureName}}",
		HTMLContent: "<p>The procedure <b>{{procedureName}}</b> ({{lob}}) expired on " +
			"{{expiryDate}}. It must be renewed or retired.</p>",
	},
	string(EventAccessGranted): {
		Type:    string(EventAccessGranted),
		Subject: "Access Granted: {{targetUserName}}",
		HTMLContent: "<p>{{targetUserName}} has been granted access ({{newValue}}) by " +
			"{{performedBy}}.</p><p>Reason: {{reason}}</p>",
	},
	string(EventAccessRevoked): {
		Type:    string(EventAccessRevoked),
		Subject: "Access Revoked: {{targetUserName}}",
		HTMLContent: "<p>Access for {{targetUserName}} ({{oldValue}}) has been revoked by " +
			"{{performedBy}}.</p><p>Reason: {{reason}}</p>",
	},
	string(EventRoleUpdated): {
		Type:    string(EventRoleUpdated),
		Subject: "Role Updated: {{targetUserName}}",
		HTMLContent: "<p>The role of {{targetUserName}} was changed from {{oldValue}} to " +
			"{{newValue}} by {{performedBy}}.</p><p>Reason: {{reason}}</p>",
	},
	string(EventSystemAction): {
		Type:        string(EventSystemAction),
		Subject:     "Procedures Hub: {{actionType}}",
		HTMLContent: "<p>System action <b>{{actionType}}</b> performed by {{performedBy}}.</p><p>{{details}}</p>",
	},
	string(EventWeeklyDigest): {
		Type:        string(EventWeeklyDigest),
		Subject:     "Procedures Hub Weekly Digest",
		HTMLContent: "{{digestBody}}",
	},
}
